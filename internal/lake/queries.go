package lake

import (
	"fmt"
	"strings"

	"github.com/tyler180/bbref-season-stats/internal/bbref"
)

// TableName is the Athena table holding every season of c.
func TableName(c bbref.Category) string {
	return "player_" + strings.ReplaceAll(c.String(), "-", "_")
}

// BuildCreateTable declares an external table over the long-layout CSV
// objects of one category. OpenCSVSerde reads everything as string; cast
// value_num when querying.
func BuildCreateTable(db string, c bbref.Category, location string) string {
	return fmt.Sprintf(`
CREATE EXTERNAL TABLE IF NOT EXISTS %s.%s (
  player     string,
  ord        string,
  stat       string,
  col        string,
  kind       string,
  value_text string,
  value_num  string
)
PARTITIONED BY (season int)
ROW FORMAT SERDE 'org.apache.hadoop.hive.serde2.OpenCSVSerde'
WITH SERDEPROPERTIES ('separatorChar' = ',', 'quoteChar' = '"')
LOCATION '%s'
TBLPROPERTIES ('skip.header.line.count' = '1')`, db, TableName(c), location)
}

// BuildAddPartition registers (or re-points) one season.
func BuildAddPartition(db string, c bbref.Category, season int, location string) string {
	return fmt.Sprintf(`ALTER TABLE %s.%s ADD IF NOT EXISTS PARTITION (season = %d) LOCATION '%s'`,
		db, TableName(c), season, location)
}

// BuildStatSeries returns one player's value for a stat across seasons.
func BuildStatSeries(db string, c bbref.Category, player, stat string) string {
	return fmt.Sprintf(`
SELECT season, TRY_CAST(NULLIF(value_num, '') AS double) AS value
FROM %s.%s
WHERE player = '%s' AND stat = '%s'
ORDER BY season`, db, TableName(c), quote(player), quote(stat))
}

// SeasonStatFilter selects one stat of one season.
func SeasonStatFilter(season int, stat string) string {
	return fmt.Sprintf("season = %d AND stat = '%s'", season, quote(stat))
}

// quote escapes a string literal; player names carry apostrophes (O'Neal).
func quote(s string) string { return strings.ReplaceAll(s, "'", "''") }
