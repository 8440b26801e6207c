package weather

// Combine concatenates the tables of successful station results into one table.
// Results are taken in the given order (the collector emits them in registry
// order) and each station's records keep their original order. Columns are the
// union of all station columns in first-seen order.
func Combine(results []StationResult) Table {
	var (
		columns []string
		records []Record
	)
	seen := make(map[string]bool)

	for _, r := range results {
		if !r.OK() {
			continue
		}
		for _, col := range r.Table.Columns {
			if !seen[col] {
				seen[col] = true
				columns = append(columns, col)
			}
		}
		records = append(records, r.Table.Records...)
	}

	return Table{
		Columns: columns,
		Records: records,
	}
}

// Collected counts the stations that produced a table and the records they contributed.
func Collected(results []StationResult) (stations, records int) {
	for _, r := range results {
		if r.OK() {
			stations++
			records += r.Table.Len()
		}
	}
	return stations, records
}
