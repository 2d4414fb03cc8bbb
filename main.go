package main

import "github.com/caravanleads/caravan/cmd"

func main() {
	cmd.Execute()
}
