// Package exporter renders a computed dashboard snapshot as a
// downloadable report: a multi-sheet XLSX workbook or a sectioned CSV
// with UTF-8 BOM for Excel compatibility.
package exporter
