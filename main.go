package main

import "media-cleaner/cmd"

func main() {
	cmd.Execute()
}
