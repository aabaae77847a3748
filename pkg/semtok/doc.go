/*
Package semtok resolves every identifier of a parsed file to a semantic
highlight kind.

Pipeline:
---------

	  source.Parsed         types.World
	  (tokens, AST,      (snapshot of the
	   scope tree)        package cache)
	        |                   |
	        +---------+---------+
	                  |
	                  v
	          +---------------+
	          |    Check      |  walk identifiers,
	          |               |  resolve each one
	          +---------------+
	                  |
	        chunks of Tokens, in source order
	                  |
	                  v
	          +---------------+
	          |    Runner     |  one run per file,
	          |               |  drops stale chunks
	          +---------------+
	                  |
	                  v
	              publisher

Token Kinds:
------------

	Symbol kind     ->   TokenType      Modifiers
	-----------          ---------      ---------
	var                  variable
	const                constant       readonly
	type                 type
	field                field
	func                 function
	method               method
	param                parameter
	label                label
	package              package
	builtin              builtin        defaultLibrary

Predeclared names also carry defaultLibrary. The identifier that declares
a symbol carries declaration. Identifiers that do not resolve produce no
token.

Staleness:
----------
A run is tied to the revision of the parse it started from. Each chunk is
published only while that revision is still the file's current one and
the run has not been superseded by a newer run for the same file.
*/
package semtok
