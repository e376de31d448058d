// Command inkwell is a CLI client for the blog platform. It keeps an
// authenticated session on disk (or in Redis for shared deployments) and
// exposes account, user, and post operations over the platform's API.
package main

func main() {
	Execute()
}
