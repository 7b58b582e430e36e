package main

import "robot-dataset-curator/cmd"

func main() {
	cmd.Execute()
}
