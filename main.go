// Command pcs inspects the resource relations of a pacemaker cluster.
package main

import "github.com/papapumpkin/pcs/cmd"

func main() {
	cmd.Execute()
}
