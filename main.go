package main

import "github.com/kasuboski/rollwatch/cmd"

func main() {
	cmd.Execute()
}
