package main

import "github.com/rui-yang/ICO/cmd"

func main() {
	cmd.Execute()
}
