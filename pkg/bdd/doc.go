// Package bdd wires a mockserver.Controller into a godog test suite.
//
// The suite starts the mock server before the first scenario, clears all
// stubs and the request journal before each scenario, and stops the server
// after the last one. It also registers a step library for stubbing
// endpoints and for asserting on HTTP responses:
//
//	Given the mock server is running
//	And the mock endpoint "GET" "/users/1" returns 200 with body:
//	  """
//	  {"id": 1, "name": "Ada"}
//	  """
//	When I send a "GET" request to "/users/1"
//	Then the response status should be 200
//	And the response JSON at "$.name" should be "Ada"
//	And the response should satisfy "status == 200 && body.id == 1"
//
// Typical wiring from a _test.go file:
//
//	func TestFeatures(t *testing.T) {
//	    suite := bdd.NewSuite(mockserver.New())
//	    status := suite.TestSuite("connector", &godog.Options{
//	        Format:   "pretty",
//	        Paths:    []string{"features"},
//	        TestingT: t,
//	    }).Run()
//	    if status != 0 {
//	        t.Fatalf("feature suite failed with status %d", status)
//	    }
//	}
package bdd
