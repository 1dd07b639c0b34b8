package wikijs

// GraphQL documents for the Wiki.js pages API. Field sets mirror what the
// callers decode; the schema enforces path uniqueness per locale remotely.

const loginMutation = `
mutation($username: String!, $password: String!) {
	authentication {
		login(username: $username, password: $password) {
			succeeded
			jwt
			message
		}
	}
}`

const pageByIDQuery = `
query($id: Int!) {
	pages {
		single(id: $id) {
			id
			title
			path
			content
			description
			editor
			isPublished
			isPrivate
			locale
			createdAt
			updatedAt
			authorName
			creatorName
			tags {
				id
				title
				tag
			}
		}
	}
}`

const pageByPathQuery = `
query($path: String!, $locale: String!) {
	pages {
		singleByPath(path: $path, locale: $locale) {
			id
			title
			path
			content
			description
			editor
			isPublished
			isPrivate
			locale
			createdAt
			updatedAt
			authorName
			creatorName
			tags {
				id
				title
				tag
			}
		}
	}
}`

const listPagesQuery = `
query {
	pages {
		list {
			id
			title
			path
			description
			isPublished
			locale
			updatedAt
		}
	}
}`

const createPageMutation = `
mutation($title: String!, $content: String!, $description: String!, $path: String!, $locale: String!, $editor: String!, $isPublished: Boolean!, $isPrivate: Boolean!, $tags: [String]!) {
	pages {
		create(
			title: $title,
			content: $content,
			description: $description,
			path: $path,
			locale: $locale,
			editor: $editor,
			isPublished: $isPublished,
			isPrivate: $isPrivate,
			tags: $tags
		) {
			responseResult {
				succeeded
				errorCode
				slug
				message
			}
			page {
				id
				title
				path
				description
				content
				isPublished
				createdAt
				updatedAt
			}
		}
	}
}`

const updatePageMutation = `
mutation($id: Int!, $title: String, $content: String, $description: String, $tags: [String]) {
	pages {
		update(
			id: $id,
			title: $title,
			content: $content,
			description: $description,
			tags: $tags
		) {
			responseResult {
				succeeded
				errorCode
				slug
				message
			}
			page {
				id
				title
				path
				description
				content
				isPublished
				updatedAt
				tags {
					id
					title
					tag
				}
			}
		}
	}
}`

const deletePageMutation = `
mutation($id: Int!) {
	pages {
		delete(id: $id) {
			responseResult {
				succeeded
				errorCode
				slug
				message
			}
		}
	}
}`

const schemaSummaryQuery = `
query {
	__schema {
		queryType {
			name
			fields {
				name
				description
				args {
					name
					type {
						name
					}
				}
			}
		}
		mutationType {
			name
			fields {
				name
				description
				args {
					name
					type {
						name
					}
				}
			}
		}
		types {
			name
			kind
			description
		}
	}
}`

const typeDetailQuery = `
query($name: String!) {
	__type(name: $name) {
		name
		kind
		fields {
			name
			description
			args {
				name
				description
				type {
					name
					kind
				}
				defaultValue
			}
			type {
				name
				kind
			}
		}
	}
}`
