// Package di provides dependency injection wiring based on samber/do:
// lazy providers for the core services and a bridge exposing lifecycle
// components to the injector.
package di

import "github.com/samber/do/v2"

// Injector is the injection container interface.
type Injector = do.Injector

// RootScope is the root injection container.
type RootScope = do.RootScope

// New creates a root injector.
var New = do.New
