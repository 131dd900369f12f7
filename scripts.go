package wq

import "github.com/redis/go-redis/v9"

// Every state transition in wq crosses the wire as a single server-evaluated
// Lua script, which is what makes claim/reclaim/resolve atomic in the face
// of concurrent workers (spec §4, invariants I1-I5): each script runs as one
// round trip rather than a sequence of separate calls wrapped in a
// client-side transaction.

// enqueueScript stores the job record, appends its id to the priority
// queue, bumps the scheduled gauge and wakes any blocked claimers.
//
// KEYS: 1=jobs 2=queue:<priority> 3=stats 4=wake
// ARGV: 1=job_id 2=job_json
var enqueueScript = redis.NewScript(`
redis.call('HSET', KEYS[1], ARGV[1], ARGV[2])
redis.call('RPUSH', KEYS[2], ARGV[1])
redis.call('HINCRBY', KEYS[3], 'scheduled', 1)
redis.call('PUBLISH', KEYS[4], ARGV[1])
return 1
`)

// claimScript implements spec §4.3's scan-claim loop as one round trip: it
// walks the three priority lists in order, discarding ids that were
// cancelled or whose deadline has already passed, and returns the first
// live job it finds along with a freshly-written claim.
//
// KEYS: 1=queue:High 2=queue:Normal 3=queue:Low 4=jobs 5=claims 6=cancelled
//
//	7=stats
//
// ARGV: 1=worker_id 2="High" 3="Normal" 4="Low" 5=now_rfc3339 6=now_unix_nano
//
// Returns {job_id, job_json} on success, or false if every queue is empty.
var claimScript = redis.NewScript(`
local priority_names = {ARGV[2], ARGV[3], ARGV[4]}
local now_nano = tonumber(ARGV[6])
for i = 1, 3 do
  while true do
    local job_id = redis.call('LPOP', KEYS[i])
    if not job_id then
      break
    end
    local job_json = redis.call('HGET', KEYS[4], job_id)
    if not job_json then
      redis.call('HINCRBY', KEYS[7], 'scheduled', -1)
    else
      if redis.call('SISMEMBER', KEYS[6], job_id) == 1 then
        redis.call('SREM', KEYS[6], job_id)
        redis.call('HINCRBY', KEYS[7], 'scheduled', -1)
      else
        local job = cjson.decode(job_json)
        if job.deadline_unix_nano and job.deadline_unix_nano <= now_nano then
          redis.call('HINCRBY', KEYS[7], 'scheduled', -1)
        else
          local claim = cjson.encode({
            job_id = job_id,
            priority = priority_names[i],
            worker_id = ARGV[1],
            time = ARGV[5],
            time_unix_nano = now_nano,
          })
          redis.call('HSET', KEYS[5], job_id, claim)
          redis.call('HINCRBY', KEYS[7], 'scheduled', -1)
          redis.call('HINCRBY', KEYS[7], 'claimed', 1)
          return {job_id, job_json}
        end
      end
    end
  end
end
return false
`)

// reclaimScript refreshes a claim's ownership window in place, provided the
// caller still holds it (spec §4.4).
//
// KEYS: 1=claims 2=cancelled
// ARGV: 1=job_id 2=worker_id 3=now_rfc3339 4=now_unix_nano
var reclaimScript = redis.NewScript(`
if redis.call('SISMEMBER', KEYS[2], ARGV[1]) == 1 then
  return redis.error_reply('JobCancelled')
end
local claim_json = redis.call('HGET', KEYS[1], ARGV[1])
if not claim_json then
  return redis.error_reply('JobNotFound')
end
local claim = cjson.decode(claim_json)
if claim.worker_id ~= ARGV[2] then
  return redis.error_reply('WorkerMismatch')
end
claim.time = ARGV[3]
claim.time_unix_nano = tonumber(ARGV[4])
redis.call('HSET', KEYS[1], ARGV[1], cjson.encode(claim))
return 1
`)

// resolveScript writes the terminal result, drops the claim and updates
// stats (spec §4.5). It does not consult the cancelled set: a job can be
// cancelled and still resolved by a worker that raced the cancellation.
// With no claim present, it fails with WorkerMismatch if a result is
// already stored (a repeated resolve) and with JobNotFound otherwise.
//
// KEYS: 1=claims 2=results 3=stats 4=resolved
// ARGV: 1=job_id 2=worker_id 3=stat_field 4=result_json 5=status_string
var resolveScript = redis.NewScript(`
local claim_json = redis.call('HGET', KEYS[1], ARGV[1])
if not claim_json then
  if redis.call('HEXISTS', KEYS[2], ARGV[1]) == 1 then
    return redis.error_reply('WorkerMismatch')
  end
  return redis.error_reply('JobNotFound')
end
local claim = cjson.decode(claim_json)
if claim.worker_id ~= ARGV[2] then
  return redis.error_reply('WorkerMismatch')
end
redis.call('HSET', KEYS[2], ARGV[1], ARGV[4])
redis.call('HDEL', KEYS[1], ARGV[1])
redis.call('HINCRBY', KEYS[3], 'claimed', -1)
redis.call('HINCRBY', KEYS[3], ARGV[3], 1)
redis.call('PUBLISH', KEYS[4], ARGV[1] .. ':' .. ARGV[5])
return 1
`)

// cancelScript marks a job cancelled without scanning the priority lists
// (spec §4.6): a still-queued job is discarded the next time it is popped
// by claimScript; an already-claimed job is left for reclaimScript to
// reject.
//
// KEYS: 1=cancelled
// ARGV: 1=job_id
var cancelScript = redis.NewScript(`
redis.call('SADD', KEYS[1], ARGV[1])
return 1
`)

// reclaimSweepScript is invoked once per candidate stale claim by the
// background reclaim checker (spec §4.7). It re-validates staleness and
// ownership server-side so that two concurrently-running checkers can never
// both requeue the same claim.
//
// KEYS: 1=claims 2=cancelled 3=stats 4=wake 5=queue:<claim.priority>
// ARGV: 1=job_id 2=reclaim_timeout_nanos 3=now_unix_nano
//
// Returns 1 if the claim was requeued, 0 otherwise (already refreshed,
// already resolved, or cancelled).
var reclaimSweepScript = redis.NewScript(`
local claim_json = redis.call('HGET', KEYS[1], ARGV[1])
if not claim_json then
  return 0
end
local claim = cjson.decode(claim_json)
local now_nano = tonumber(ARGV[3])
local timeout_nano = tonumber(ARGV[2])
if (now_nano - claim.time_unix_nano) <= timeout_nano then
  return 0
end
if redis.call('SISMEMBER', KEYS[2], ARGV[1]) == 1 then
  return 0
end
redis.call('HDEL', KEYS[1], ARGV[1])
redis.call('HINCRBY', KEYS[3], 'claimed', -1)
redis.call('LPUSH', KEYS[5], ARGV[1])
redis.call('HINCRBY', KEYS[3], 'scheduled', 1)
redis.call('PUBLISH', KEYS[4], ARGV[1])
return 1
`)

// deleteResultScript removes a resolved job's result, returning whether it
// existed (spec §4.8).
//
// KEYS: 1=results
// ARGV: 1=job_id
var deleteResultScript = redis.NewScript(`
return redis.call('HDEL', KEYS[1], ARGV[1])
`)
