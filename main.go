package main

import "github.com/gradsync/portal/cmd"

func main() {
	cmd.Execute()
}
