package cache

import (
	"net/http"

	"github.com/CleanExpo/zenith-cache/errcode"
)

// Module code for the cache layer.
const ModuleCode = 70

// Business codes, 70xxxx.
const (
	ErrCodeCacheMiss     = 1
	ErrCodeStoreNotFound = 2
	ErrCodeInvalidTTL    = 3
	ErrCodeSerialize     = 4
	ErrCodeDeserialize   = 5
	ErrCodeStoreGet      = 6
	ErrCodeStoreSet      = 7
	ErrCodeStoreDelete   = 8
	ErrCodeConfigInvalid = 9
)

var (
	// ErrCacheMiss marks an absent or expired key. Not a failure; callers
	// match it with errors.Is.
	ErrCacheMiss = errcode.Register(errcode.New(
		ModuleCode, ErrCodeCacheMiss,
		"cache", "error.cache.miss", "cache miss",
		http.StatusOK,
	))

	// ErrStoreNotFound means the configured store backend does not exist.
	ErrStoreNotFound = errcode.Register(errcode.New(
		ModuleCode, ErrCodeStoreNotFound,
		"cache", "error.cache.store_not_found", "cache store not found",
		http.StatusInternalServerError,
	))

	// ErrInvalidTTL rejects writes with a zero or negative TTL.
	ErrInvalidTTL = errcode.Register(errcode.New(
		ModuleCode, ErrCodeInvalidTTL,
		"cache", "error.cache.invalid_ttl", "ttl must be positive",
		http.StatusBadRequest,
	))

	// ErrSerialize wraps value serialization failures.
	ErrSerialize = errcode.Register(errcode.New(
		ModuleCode, ErrCodeSerialize,
		"cache", "error.cache.serialize", "serialize failed",
		http.StatusInternalServerError,
	))

	// ErrDeserialize wraps value deserialization failures.
	ErrDeserialize = errcode.Register(errcode.New(
		ModuleCode, ErrCodeDeserialize,
		"cache", "error.cache.deserialize", "deserialize failed",
		http.StatusInternalServerError,
	))

	// ErrStoreGet wraps backend read failures.
	ErrStoreGet = errcode.Register(errcode.New(
		ModuleCode, ErrCodeStoreGet,
		"cache", "error.cache.store_get", "store get failed",
		http.StatusInternalServerError,
	))

	// ErrStoreSet wraps backend write failures.
	ErrStoreSet = errcode.Register(errcode.New(
		ModuleCode, ErrCodeStoreSet,
		"cache", "error.cache.store_set", "store set failed",
		http.StatusInternalServerError,
	))

	// ErrStoreDelete wraps backend delete failures.
	ErrStoreDelete = errcode.Register(errcode.New(
		ModuleCode, ErrCodeStoreDelete,
		"cache", "error.cache.store_delete", "store delete failed",
		http.StatusInternalServerError,
	))

	// ErrConfigInvalid marks a rejected cache configuration.
	ErrConfigInvalid = errcode.Register(errcode.New(
		ModuleCode, ErrCodeConfigInvalid,
		"cache", "error.cache.config_invalid", "cache config invalid",
		http.StatusInternalServerError,
	))
)
