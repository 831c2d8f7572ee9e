package main

import "github.com/FusaishiHaruaki/LJA/cmd"

func main() {
	cmd.Execute()
}
