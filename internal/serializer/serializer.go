// Package serializer holds the plain-dialect serialiser program injected
// into every compile-time scratch program and every final output file
// (spec.md §4.5, §6: "The output file receives the serialiser prelude
// followed by the emitted plain-dialect program").
//
// Grounded on spec.md §4.5's contract directly — the teacher's dialect has
// no `load`/byte-dump equivalent to model this on. The embedded-template
// idiom (heredoc-wrapped plain-dialect source blocks concatenated at
// runtime) is borrowed from other_examples/golox's use of
// github.com/MakeNowJust/heredoc/v2 for embedded multi-line text.
package serializer

import "github.com/MakeNowJust/heredoc/v2"

// Global is the reserved global key the serialiser function is installed
// under in every generated program.
const Global = "__complua_serialize"

// serializeBody implements, for a runtime value:
//   - strings as double-quoted literals, escaping a backslash as \\, a
//     quote as \" and every control byte as a fixed-width \DDD
//   - tables as setmetatable({[k]=v, ...}, {}) with recursively serialised
//     keys and values, so re-serialising output reproduces the original
//     value up to metatable identity (spec.md §4.5: "idempotent ... up to
//     metatable identity")
//   - functions as load(string.char(b1, b2, ...)) over the string.dump bytes
//   - everything else via tostring
var serializeBody = heredoc.Doc(`
	local function __complua_escape(s)
	  return (s:gsub('[%c\\"]', function(c)
	    if c == '\\' then return '\\\\' end
	    if c == '"' then return '\\"' end
	    return string.format('\\%03d', string.byte(c))
	  end))
	end

	function __complua_serialize(v)
	  local t = type(v)
	  if t == "string" then
	    return '"' .. __complua_escape(v) .. '"'
	  elseif t == "number" or t == "boolean" or t == "nil" then
	    return tostring(v)
	  elseif t == "function" then
	    local dumped = string.dump(v)
	    local bytes = {}
	    for i = 1, #dumped do
	      bytes[i] = string.byte(dumped, i)
	    end
	    return "load(string.char(" .. table.concat(bytes, ", ") .. "))"
	  elseif t == "table" then
	    local parts = {}
	    for k, val in pairs(v) do
	      parts[#parts + 1] = "[" .. __complua_serialize(k) .. "] = " .. __complua_serialize(val)
	    end
	    return "setmetatable({" .. table.concat(parts, ", ") .. "}, {})"
	  else
	    return tostring(v)
	  end
	end
`)

// usingWriteHelper is the runtime half of "#using" write-through assignment
// (spec.md §4.2): see internal/emitter/using.go for the emitted call site.
var usingWriteHelper = heredoc.Doc(`
	local function __complua_using_write(prefixes, key, value, fallback)
	  for i = 1, #prefixes do
	    if prefixes[i][key] ~= nil then
	      prefixes[i][key] = value
	      return
	    end
	  end
	  fallback(value)
	end
`)

// Prelude returns the full text spliced ahead of every scratch program and
// the final output file.
func Prelude() string {
	return serializeBody + usingWriteHelper
}
