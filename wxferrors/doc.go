/*
Client error model for wxftools.

Rather than one error type per failure, errors are instances of a single Error type
tagged with an ErrorKind. The kind says what went wrong; the Error carries whatever
payload that kind needs:

• RequestError and AuthenticationError carry the response status and body.

• KernelError reports a failure talking to an evaluation kernel.

• EvaluationError carries the evaluation result and the messages it raised.

• TransportError reports a failure writing to or reading from the transport.

• ParserError carries the context of the input that could not be parsed.

Kinds are compared with Error.IsKind or, since every ErrorKind is itself an error, with
errors.Is.
*/
package wxferrors
