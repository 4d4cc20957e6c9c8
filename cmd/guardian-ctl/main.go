package main

import "github.com/oshokin/guardian/cmd/guardian-ctl/cmd"

func main() {
	cmd.Execute()
}
