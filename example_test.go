package swiftselect_test

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/oleg578/swiftselect"
)

func ExampleSelect() {
	input := "a,b,c,d,e,f,g\n\nh,i,j,k,l,m,n"

	stats, err := swiftselect.Select(os.Stdout, strings.NewReader(input), swiftselect.Config{
		Fields: []int{2, 6},
	})
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(stats.Records, stats.Emitted, stats.Skipped)
	// Output:
	// c,g
	// j,n
	// 3 2 1
}

func ExampleFieldTable() {
	record := []byte("a,,b")
	table := swiftselect.NewFieldTable(8)

	n, _ := table.Split(record, ',')
	for i := 0; i < n; i++ {
		field, _ := table.Field(record, i)
		fmt.Printf("%d:%q\n", i, field)
	}
	_, ok := table.Field(record, n)
	fmt.Println("beyond:", ok)
	// Output:
	// 0:"a"
	// 1:""
	// 2:"b"
	// beyond: false
}

func ExampleConfig_missingEmpty() {
	_, err := swiftselect.Select(os.Stdout, strings.NewReader("x,y,z\nshort\n"), swiftselect.Config{
		Fields: []int{2, 0},
	})
	fmt.Println(errors.Is(err, swiftselect.ErrMissingField))

	_, _ = swiftselect.Select(os.Stdout, strings.NewReader("x,y,z\nshort\n"), swiftselect.Config{
		Fields:  []int{2, 0},
		Missing: swiftselect.MissingEmpty,
	})
	// Output:
	// z,x
	// true
	// z,x
	// ,short
}
