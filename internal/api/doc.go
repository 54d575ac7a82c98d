// Package api handles incoming HTTP requests for the task list. Each handler
// turns one request into one worker request, waits for its result and
// translates it into a redirect, a rendered page or a fixed error body.
// Flash messages travel across redirects in the signed session cookie.
package api
