package dbuswire

import "fmt"

// Proxy is a thin façade bound to one destination bus name and object
// path, used to make repeated typed method calls against the same
// remote object.
type Proxy struct {
	conn        *Connection
	destination string
	path        string
}

// Call invokes interface.member on p's bound destination and path,
// encoding body (if non-nil) as the call's Body type and decoding the
// reply as Out.
//
// Go forbids type parameters on methods, so this is a free function
// rather than a Proxy method: the connection's static, closed-trait
// value codec (see value.go) needs the body and reply types fixed at
// the call site, the same way the reference implementation's
// `method_call::<Body, Out>` does with Rust generics.
func Call[Body any, PBody ValuePtr[Body], Out any, POut ValuePtr[Out]](p *Proxy, iface, member string, body *Body) (Out, error) {
	var out Out

	headers := []Header{
		pathHeader(p.path),
		destinationHeader(p.destination),
		interfaceHeader(iface),
		memberHeader(member),
	}

	var bodyBytes []byte
	if body != nil {
		headers = append(headers, bodySignatureHeader(SignatureOf[Body, PBody]()))
		bodyBytes = EncodeValue[Body, PBody](*body)
	}

	replies, err := p.conn.call(MethodCall, headers, bodyBytes)
	if err != nil {
		return out, err
	}

	for _, m := range replies {
		if m.Type != MessageError {
			continue
		}
		if len(m.Body) > 0 {
			s, err := DecodeValue[String, *String](newDecoder(m.Body))
			if err == nil {
				return out, &IncorrectMessage{Msg: string(s)}
			}
		}
		return out, &IncorrectMessage{Msg: "Unknown Dbus Error"}
	}

	var reply *Message
	for _, m := range replies {
		if m.Type == MethodReturn {
			reply = m
			break
		}
	}
	if reply == nil {
		return out, &IncorrectMessage{Msg: "no method return received"}
	}

	wantSig := SignatureOf[Out, POut]()
	if wantSig == "" {
		return DecodeValue[Out, POut](newDecoder(nil))
	}

	sigHeader, ok := findHeader(reply.Headers, HeaderBodySignature)
	switch {
	case !ok && len(reply.Body) > 0:
		return out, &IncompleteImplementation{Feature: "method return missing body signature header"}
	case ok && sigHeader.Value.String() != wantSig:
		return out, &IncorrectMessage{Msg: fmt.Sprintf("reply signature mismatch: expected %s, found %s", wantSig, sigHeader.Value.String())}
	}

	return DecodeValue[Out, POut](newDecoder(reply.Body))
}
