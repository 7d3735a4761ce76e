// Package hwdate parses, formats and normalizes the DD/MM/YYYY day-precision
// dates used throughout the homework document format.
package hwdate
