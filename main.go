/*
Copyright © 2025 Oleg Shokin

This file is the entry point for the spotify-grabber application.
It initializes and executes the root command defined in the cmd package.
*/
package main

import "github.com/oshokin/spotify-grabber/cmd"

func main() {
	cmd.Execute()
}
