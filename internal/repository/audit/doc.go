// Package audit stores the record written after every confirmation session.
//
// Records are encoded as protobuf Struct values. The FileRepository appends
// them as protojson lines; the SQLiteRepository keeps the same JSON next to a
// few indexed columns.
package audit
