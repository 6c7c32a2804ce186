package main

import "github.com/gilchrisn/pagerank-service/cmd"

func main() {
	cmd.Execute()
}
