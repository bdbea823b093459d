package db

import "errors"

// Sentinel errors for database operations.
var (
	ErrKeyNotFound   = errors.New("db: key not found")
	ErrIndexNotFound = errors.New("db: index not found")
	ErrIndexExists   = errors.New("db: index already exists")
)

// Op names the command that failed.
const (
	OpCreateIndex = "FT.CREATE"
	OpDropIndex   = "FT.DROPINDEX"
	OpIndexInfo   = "FT.INFO"
	OpSearch      = "FT.SEARCH"
	OpDel         = "DEL"
	OpHGetAll     = "HGETALL"
	OpHMGet       = "HMGET"
	OpHSet        = "HSET"
	OpHUpdate     = "EVALSHA hupdate"
	OpGet         = "GET"
	OpSet         = "SET"
	OpIncr        = "INCR"
	OpZAdd        = "ZADD"
	OpZRevRange   = "ZREVRANGE"
	OpZRem        = "ZREM"
)

// Error is a failed command. Key is the key or index it ran against, if any.
type Error struct {
	Op  string
	Key string
	Err error
}

func (e *Error) Error() string {
	if e.Key == "" {
		return e.Op + ": " + e.Err.Error()
	}
	return e.Op + " " + e.Key + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }
