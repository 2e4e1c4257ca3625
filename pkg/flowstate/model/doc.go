/*
Package model wraps a flowstate graph in a path-based object API.

	m, err := model.Create(map[string]any{
	    "range":   map[string]any{"start": 1, "end": 5},
	    "visible": true,
	})
	if err != nil {
	    log.Fatal(err)
	}

	_ = m.Derive("", "valid", "range.end > range.start")

	sub, _ := m.On([]string{"range.start", "valid"}, func(w ...flowstate.Window) {
	    fmt.Println(w[0].New, w[1].New)
	}, false)
	defer sub.Unsubscribe()

	_ = m.SetProp("range.start", 9) // prints "9 false"

Lock and Unlock group writes into a single update:

	m.Lock()
	_ = m.SetProp("range.start", 2)
	_ = m.SetProp("range.end", 8)
	_ = m.Unlock() // listeners fire once
*/
package model
