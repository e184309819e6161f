package main

import "github.com/GiGiDKR/tokenwatch/cmd"

func main() {
	cmd.Execute()
}
