package main

import "github.com/KaramelBytes/healthscope/cmd"

func main() {
	cmd.Execute()
}
