package main

import "github.com/MeKo-Tech/pplabel/cmd/pplabel/cmd"

func main() {
	cmd.Execute()
}
