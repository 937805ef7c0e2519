package dialect

// Built-in function vocabularies per dialect. Deliberately data, not code:
// extending a dialect's recognized functions means editing one of these
// slices, never touching the detector or registry logic.

var ansiFunctions = []string{
	"COUNT", "SUM", "AVG", "MIN", "MAX",
	"COALESCE", "NULLIF", "CAST", "CONCAT",
	"SUBSTRING", "LENGTH", "UPPER", "LOWER", "TRIM", "LTRIM", "RTRIM",
	"ROUND", "ABS", "FLOOR", "CEIL", "CEILING", "POWER", "SQRT", "MOD",
	"CURRENT_DATE", "CURRENT_TIME", "CURRENT_TIMESTAMP",
	"EXTRACT", "ROW_NUMBER", "RANK", "DENSE_RANK", "LAG", "LEAD",
	"REPLACE", "POSITION", "LIKE",
}

var sqliteFunctions = append(append([]string{}, ansiFunctions...),
	"IFNULL", "INSTR", "GROUP_CONCAT", "TOTAL", "RANDOM", "TYPEOF",
	"JSON_EXTRACT", "JSON_ARRAY", "JSON_OBJECT", "STRFTIME", "DATETIME", "DATE", "TIME",
)

var duckdbFunctions = append(append([]string{}, ansiFunctions...),
	"LIST_VALUE", "ARRAY_AGG", "STRING_AGG", "UNNEST", "STRUCT_PACK",
	"DATE_TRUNC", "DATE_DIFF", "DATE_ADD", "EPOCH", "READ_CSV_AUTO", "REGEXP_MATCHES",
)

var postgresFunctions = append(append([]string{}, ansiFunctions...),
	"ARRAY_AGG", "STRING_AGG", "GENERATE_SERIES", "DATE_TRUNC", "AGE",
	"TO_CHAR", "TO_DATE", "TO_TIMESTAMP", "REGEXP_REPLACE", "REGEXP_MATCH",
	"JSONB_BUILD_OBJECT", "JSON_BUILD_OBJECT", "COALESCE", "WIDTH_BUCKET",
)

var bigqueryFunctions = append(append([]string{}, ansiFunctions...),
	"SAFE_DIVIDE", "SAFE_CAST", "ARRAY_AGG", "STRING_AGG", "GENERATE_ARRAY",
	"DATE_DIFF", "DATE_ADD", "DATETIME_DIFF", "TIMESTAMP_DIFF", "PARSE_DATE",
	"FORMAT_DATE", "ST_DISTANCE", "APPROX_COUNT_DISTINCT",
)

var snowflakeFunctions = append(append([]string{}, ansiFunctions...),
	"ARRAY_AGG", "LISTAGG", "DATEDIFF", "DATEADD", "TO_VARCHAR", "TO_NUMBER",
	"TRY_CAST", "FLATTEN", "OBJECT_CONSTRUCT", "PARSE_JSON", "APPROX_COUNT_DISTINCT",
)

var mysqlFunctions = append(append([]string{}, ansiFunctions...),
	"IFNULL", "GROUP_CONCAT", "DATEDIFF", "DATE_ADD", "DATE_SUB", "STR_TO_DATE",
	"DATE_FORMAT", "NOW", "UNIX_TIMESTAMP", "FROM_UNIXTIME", "JSON_EXTRACT",
)
