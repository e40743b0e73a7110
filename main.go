package main

import "github.com/Materials-Data-Science-and-Informatics/dirschema/cmd"

func main() {
	cmd.Execute()
}
