// Command chartctl computes charts from the command line and prints them as JSON.
package main

func main() {
	Execute()
}
