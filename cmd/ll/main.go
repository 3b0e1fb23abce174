package main

import "lifelevel/cmd/ll/root"

func main() {
	root.Execute()
}
