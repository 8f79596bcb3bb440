package serializer

// Global serialize the given render to the general API response format.
func Global(render interface{}) interface{} {
	return map[string]interface{}{
		"data": render,
	}
}

// Page serializes a page of a paginated collection.
func Page(render interface{}, total, page, limit int) interface{} {
	return map[string]interface{}{
		"data":  render,
		"total": total,
		"page":  page,
		"limit": limit,
	}
}
