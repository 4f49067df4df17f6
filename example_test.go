package brace_test

import (
	"fmt"

	"github.com/deicod/brace"
)

func Example() {
	env := brace.NewEnvironment()

	if _, err := env.Compile("item", "<li>{name}</li>"); err != nil {
		panic(err)
	}
	tmpl, err := env.Compile("list", "<ul>{#for person of people}{>item person}{/for}</ul>")
	if err != nil {
		panic(err)
	}

	out, err := tmpl.Render(map[string]interface{}{
		"people": []map[string]interface{}{
			{"name": "Ada"},
			{"name": "Grace"},
		},
	})
	if err != nil {
		panic(err)
	}
	fmt.Println(out)
	// Output: <ul><li>Ada</li><li>Grace</li></ul>
}

func ExampleCompile() {
	tmpl, err := brace.Compile("hello", "<p>{name}</p>")
	if err != nil {
		panic(err)
	}
	fmt.Println(tmpl.Code())
	// Output: function(p){return '<p>'+p.name+'</p>'}
}
