package main

import "github.com/dbsmedya/lppminer/cmd/lppminer/cmd"

func main() {
	cmd.Execute()
}
