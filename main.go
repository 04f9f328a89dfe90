package main

import "github.com/adampisula/musicdl-server/cmd"

func main() {
	cmd.Execute()
}
