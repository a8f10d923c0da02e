package main

import "github.com/hackerwear/storefront/cmd/storefront/cmd"

func main() {
	cmd.Execute()
}
