package main

import "github.com/Mohsinsiddi/journal/cmd"

func main() {
	cmd.Execute()
}
