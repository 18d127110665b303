package config

//go:generate go tool go-enum --marshal --names

// How block extents are obtained when no rendering surface is present.
// ENUM(static, estimate)
type MeasureMode int

// How many blocks underflow assist pulls to the previous page.
// ENUM(unconditional, capacityChecked)
type UnderflowMode int

// Where page numbering adds missing page number placeholders.
// ENUM(none, header, footer)
type PageNumberPlacement int
