// Package io reads and writes chart datasets.
//
// # JSON Format
//
// A dataset lists its dimension and measure column names followed by the
// rows. Dimension columns come first:
//
//	{
//	  "dimensions": ["Quarter", "Region"],
//	  "measures": ["Sales"],
//	  "rows": [
//	    ["Q1", "East", 100],
//	    ["Q1", "West", 50],
//	    ["Q2", "East", null]
//	  ]
//	}
//
// A cell is a string, a number, null (a missing value), or the full object
// form {"id": [3], "num": 100, "text": "100 €"} that [WriteJSON] produces.
// Dimension cells without an explicit id get the index of the first row in
// which their value appears in that column, so every distinct category has a
// stable back-reference. Numbers keep their literal text as display text.
//
// # CSV Format
//
// The header row names the columns. The first dims columns are dimensions
// and the rest are measures; empty measure fields are missing values.
//
//	Quarter,Region,Sales
//	Q1,East,100
//
// # Usage
//
//	ds, err := io.ImportFile("sales.csv", 2)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	m := model.Shape(ds, cfg)
//
// Shaping tolerates malformed datasets, but the readers reject input they
// cannot parse at all with an INVALID_DATASET error.
package io
