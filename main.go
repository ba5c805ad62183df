package main

import "github.com/rolinkstone/new-talawang-sub001/cmd"

func main() {
	cmd.Execute()
}
