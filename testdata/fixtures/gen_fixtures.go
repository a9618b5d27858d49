//go:build ignore

// gen_fixtures generates the larger CSV fixtures.
// Run with: go run gen_fixtures.go
package main

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"strconv"
)

var (
	firstNames  = []string{"Ada", "Ben", "Cleo", "Dev", "Eli", "Fay", "Gus", "Hana", "Ivo", "Jun"}
	lastNames   = []string{"Berg", "Cruz", "Dahl", "Ek", "Fox", "Gale", "Holm", "Ito"}
	roles       = []string{"Developer", "Designer", "Manager", "Analyst"}
	departments = []string{"Engineering", "Design", "Management", "Analytics"}
	locations   = []string{"New York", "Chicago", "Boston", "Seattle", "Austin", "Denver"}
)

func main() {
	if err := generateLarge("large.csv", 5000); err != nil {
		log.Fatalf("Failed to generate large.csv: %v", err)
	}
	log.Println("All fixtures generated successfully")
}

// large.csv - many rows for paging and sort checks
func generateLarge(path string, n int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"id", "name", "email", "age", "role", "department", "location"}); err != nil {
		return err
	}

	for i := 0; i < n; i++ {
		first := firstNames[i%len(firstNames)]
		last := lastNames[(i/len(firstNames))%len(lastNames)]
		record := []string{
			strconv.Itoa(i + 1),
			first + " " + last,
			fmt.Sprintf("user%d@example.com", i+1),
			strconv.Itoa(20 + i%45),
			roles[i%len(roles)],
			departments[i%len(departments)],
			locations[i%len(locations)],
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
