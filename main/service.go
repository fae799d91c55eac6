package main

import "specter-vision/cli"

func main() {
	cli.Execute()
}
