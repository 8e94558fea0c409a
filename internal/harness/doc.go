// Package harness runs YAML query scenarios against a freshly seeded
// database and checks the results, optionally against golden files.
//
// # Scenario Format
//
//	name: user_roles
//	description: "Admins and their roles"
//	schema: schema.cue          # CUE, YAML or JSON entity definitions
//	seed: seed.sql              # optional SQL script
//	setup:                      # optional extra statements, run after seed
//	  - INSERT INTO us_role VALUES (4, 'GUEST', NULL)
//	max_page_size: 100
//	parallel: true              # relation queries on a worker pool
//	requests:
//	  - name: admins
//	    entity: User
//	    columns: [name, roles.code]
//	    filter: roles.code==ADMIN
//	    size: 10
//	    expect:
//	      ids: [1, 3]
//	      fields: [id, name, roles]
//	  - name: adults
//	    entity: User
//	    count: true
//	    filter: age>=18
//	    expect:
//	      count: 4
//	  - name: bad_filter
//	    entity: User
//	    filter: age=like=3
//	    expect:
//	      error: FILTER_SYNTAX
//
// Relative schema and seed paths are resolved against the directory of the
// scenario file.
//
// # Expectations
//
//   - ids: identities of the returned objects, in order
//   - count: number of returned objects, or the result of a count request
//   - fields: the exact set of populated top-level fields of every object
//   - error: the error code the request must fail with
//
// A request without an expect clause passes when it does not fail.
//
// # Determinism
//
// Every scenario runs on its own in-memory SQLite database, and entities
// are materialized as *schema.Record, whose JSON form has sorted keys, so
// the snapshot compared against golden files is stable across runs.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/user_roles.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, e := range result.Errors {
//	        log.Println(e)
//	    }
//	}
package harness
