package main

import "spokd/internal/cmd"

func main() {
	cmd.Run()
}
