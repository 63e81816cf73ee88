package main

import "github.com/kasuganosora/weaponpaints/cmd"

func main() {
	cmd.Execute()
}
