package main

import "github.com/awendt/warden/cmd"

func main() {
	cmd.Execute()
}
