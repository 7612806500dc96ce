package main

import "github.com/Tiliavir/rp-shift-tracker/cmd"

func main() {
	cmd.Execute()
}
