// Package filter parses and compiles the textual filter language.
//
// The language is RSQL:
//
//	age>=18;roles.code==ADMIN
//	name==al*,(country=in=(US,UK) and age=lt=30)
//
// ';' (or " and ") is conjunction and binds tighter than ',' (or " or ").
// Parentheses group. A selector is an attribute of the root entity or
// relation.attribute, one hop deep.
//
// Operators:
//
//	==  !=                    equal, not equal; '*' is a wildcard on text
//	=gt= >  =ge= >=           greater (or equal), ordered kinds only
//	=lt= <  =le= <=           less (or equal), ordered kinds only
//	=in= =out=                membership in an argument list
//	=isnull=                  true or false
//
// Parse produces a Node tree. Compile resolves every selector against the
// schema catalog and coerces every argument to the attribute's kind,
// producing a CompiledPredicate. Nothing touches a store until the
// predicate is bound to a query with Bind.
package filter
