package main

import "github.com/theirongolddev/ledgercast/cmd"

func main() {
	cmd.Execute()
}
