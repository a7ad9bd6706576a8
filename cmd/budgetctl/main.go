// Command budgetctl runs operator tasks against the ledger database.
package main

func main() {
	Execute()
}
