// Package query finds elements in rendered HTML the way a user perceives
// them: by accessible role and name, label text, placeholder, visible text,
// display value, alt text, title, or test id as a last resort.
//
// Every query comes in four variants. Get and GetAll fail when nothing
// matches (Get also fails on more than one match), Query and QueryAll return
// nothing instead of failing, and Find polls a loader until the element
// appears, which suits results that show up after an asynchronous
// submission settles.
//
//	screen, _ := query.ParseBytes(page)
//	submit, err := screen.Get(query.ByRole("button", query.Name("Submit")))
//	alert, err := query.Find(ctx, load, query.ByRole("alert"))
package query
