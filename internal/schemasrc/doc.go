// Package schemasrc loads entity definitions for the schema catalog.
//
// Two source formats are supported. CUE is the primary one:
//
//	entity: User: {
//		table: "us_user"
//		attributes: {
//			id:   "integer"
//			name: {type: "text"}
//			roles: {
//				relation: "many-to-many"
//				target:   "Role"
//				joinTable: {name: "us_user_role", column: "user_id", inverseColumn: "role_id"}
//			}
//		}
//	}
//
// An attribute is either a bare kind name or a struct with the fields of
// schema.AttributeDef. Attribute order follows the CUE field order.
//
// YAML and JSON documents hold a list under "entities" and are validated
// against an embedded JSON Schema before decoding.
package schemasrc
