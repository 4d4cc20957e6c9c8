package main

import "github.com/oshokin/guardian/cmd/guardian-monitor/cmd"

func main() {
	cmd.Execute()
}
