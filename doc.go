/*
Package httpx provides [net/http] utilities for the content-repository
diagnostic endpoints: a [Responder] that answers [CORS-preflight requests]
for a single endpoint, and (in subpackage [github.com/jcrtools/httpx/cookies])
helpers for reading, extending, and dropping HTTP cookies.

A [Responder] intercepts OPTIONS requests whose path starts with a configured
prefix and that carry an Origin header. It short-circuits the handler chain
and replies with status 200 and the following headers:

  - Access-Control-Allow-Origin, which reflects the request's origin;
  - Access-Control-Allow-Credentials (if credentialed access is enabled);
  - Access-Control-Allow-Headers, which lists the allowed request headers;
  - Access-Control-Allow-Methods, which lists the allowed methods;
  - Access-Control-Max-Age (if configured).

Every other request reaches the wrapped handler untouched.
In particular, a Responder never adds CORS headers to responses to
non-preflight requests; that's the wrapped handler's business.

By default (see [DefaultConfig]), a Responder reflects any origin.
This is deliberate for a diagnostic tool that is reached from arbitrary
author instances, but you can restrict the set of allowed origins
via [Config.Origins].

Follow the rules listed below:

  - Because CORS-preflight requests use OPTIONS as their method,
    you SHOULD NOT prevent OPTIONS requests from reaching the Responder.
  - Because CORS-preflight requests are not authenticated, authentication
    SHOULD NOT take place "ahead of" a Responder.
    However, a Responder MAY wrap an authentication middleware.

[CORS-preflight requests]: https://developer.mozilla.org/en-US/docs/Glossary/Preflight_request
*/
package httpx
