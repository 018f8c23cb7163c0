// Package lua lets users script extra completion sources in Lua.
//
// A source script defines a single function:
//
//	function complete(fragment)
//	    return {
//	        { label = "editor", insert = "editor", detail = "local word" },
//	    }
//	end
//
// The returned tables become completion candidates fed into the engine.
// Scripts run in a sandboxed state: only the base, table, string and math
// libraries are open, and file or process access is not available.
//
// gopher-lua states are not goroutine-safe; a Source serializes all calls
// internally.
package lua
