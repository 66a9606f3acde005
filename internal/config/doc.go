// Package config provides configuration for prerender projects.
//
// Two sources feed a running process:
//
//   - The project file (prerender.json, prerender.yaml or prerender.yml) at the
//     project root names the root component, routes, store middleware and
//     reducers, the providers wrapped around the root, and where client build
//     metadata lives.
//   - Process-wide switches (client/server, development, logger, devtools,
//     SSR disabled) read from PRERENDER_* environment variables, optionally
//     loaded from .env files.
//
// Both are immutable once loaded and passed by value into every component.
//
// # Configuration File Structure
//
//	{
//	  "rootComponent": "app",
//	  "routes": "routes",
//	  "redux": {
//	    "middleware": "default",
//	    "reducers": "app"
//	  },
//	  "providers": ["redux", "router"],
//	  "assets": {
//	    "stats": "dist/webpack-stats.json",
//	    "publicPath": "/dist/"
//	  },
//	  "static": {"dir": "static", "prefix": "/"},
//	  "server": {"host": "0.0.0.0", "port": 3000},
//	  "document": {"title": "My App", "lang": "en"}
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	flags, err := config.LoadFlags()
package config
