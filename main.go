package main

import "github.com/naka-gawa/servicedesk-stats/cmd"

func main() {
	cmd.Execute()
}
