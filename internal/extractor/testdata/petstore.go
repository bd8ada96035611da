package petstore

// @openapi info
// title: Swagger Petstore
// version: 1.0.5
// description: |
//   This is a sample Pet Store Server.
//   Multiple lines are kept.

// Pet is the stored animal.
//
// @openapi schema
// name: Pet
// schema:
//   type: object
//   required: [name, photoUrls]
//   properties:
//     id: {type: integer, format: int64}
//     name: {type: string, example: doggie}
type Pet struct {
	ID   int64
	Name string
}

// FindByStatus lists pets with the given status.
//
// @openapi path-operation
// method: get
// path: /pet/findByStatus
// operationId: findPetsByStatus
// tags: [pet]
// responses:
//   200:
//     description: successful operation
//     content:
//       application/json:
//         schema: {type: array, items: {$ref: "#/components/schemas/Pet"}}
//   400: {description: Invalid status value}
func FindByStatus() {
	/*
	@openapi tag {name: pet, description: Everything about your Pets}
	@openapi tag
	  name: store
	  description: Access to Petstore orders
	*/
	msg := "@openapi info {title: not a comment}"
	_ = msg
}
