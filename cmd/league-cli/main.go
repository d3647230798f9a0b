package main

import "f1league/cmd/league-cli/cmd"

func main() {
	cmd.Execute()
}
